package main

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version string

func main() {
	Execute()
}
