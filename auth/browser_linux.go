package auth

var browser = []string{"xdg-open"}
