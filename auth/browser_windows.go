package auth

var browser = []string{"rundll32", "url.dll,FileProtocolHandler"}
