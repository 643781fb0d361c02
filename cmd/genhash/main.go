// cmd/genhash/main.go: prints the bcrypt hash stored for a password.
// Uso: go run ./cmd/genhash <senha>
package main

import (
	"fmt"
	"os"

	"siso/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <senha>")
		os.Exit(2)
	}
	h, err := auth.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
