package main

import (
	"context"
	"fmt"
	"os"

	"github.com/InfinyLoop-Nexus/Oracle/internal/admin"
)

func main() {
	if err := admin.NewRootCmd(admin.OpenPostgres).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
