package main

import "github.com/frahmantamala/study-tracker/cmd"

func main() {
	cmd.Execute()
}
