package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-insight",
	Short: "A CLI for managing the Stock Insight services",
	Long:  `Stock Insight runs AI analysis panels for stocks: market data, news, and a structured verdict per ticker.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
