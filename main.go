/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/alexandertaboriskiy/navixmind-sub001/cmd"

func main() {
	cmd.Execute()
}
