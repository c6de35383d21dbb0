// Command teamform forms balanced teams from roster files and drives a
// running team formation server.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/okian/teammate/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	Execute()
}
