package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/marathonkr/marathon-pipeline/internal/cli"
)

func main() {
	cli.Execute()
}
