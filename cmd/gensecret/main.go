package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

// Prints random hex secret to be used as SECRET_KEY
func main() {
	n := pflag.IntP("bytes", "b", SecretKeyBytesLen, "Secret length in bytes")
	pflag.Parse()

	if *n < SecretKeyBytesLen {
		fmt.Fprintf(os.Stderr, "secret has to be at least %d bytes\n", SecretKeyBytesLen)
		os.Exit(1)
	}

	b := make([]byte, *n)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
