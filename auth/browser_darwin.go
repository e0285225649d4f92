package auth

var browser = []string{"open"}
