/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/chen-001/tapirtwins-go/cmd"

func main() {
	cmd.Execute()
}
