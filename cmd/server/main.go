package main

import "orbit/internal/app/server"

func main() {
	server.Run()
}
