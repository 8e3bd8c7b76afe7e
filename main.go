package main

import "github.com/UserUmbasa/explore-with-me/cmd"

func main() {
	cmd.Execute()
}
