package main

import "github.com/arhaangamer7865-design/Auranut/cmd/auranut"

func main() {
	auranut.Execute()
}
