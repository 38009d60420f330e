package main

import "github.com/jsphweid/vidstream/cmd"

func main() {
	cmd.Execute()
}
