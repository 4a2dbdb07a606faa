package main

// Version of julesite.
// Overridden at release time with -ldflags "-X main._version=...".
var _version = "0.1.0-dev"
