/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/binrec/cmd/binrec/cmd"

func main() {
	cmd.Execute()
}
