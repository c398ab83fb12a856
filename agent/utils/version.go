package utils

// Version is overwritten by the release build with -ldflags.
var Version = "0.1.0-dev"
