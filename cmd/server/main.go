package main

import "rota/internal/app/server"

func main() {
	server.Run()
}
