package main

import "github.com/thirdweb-dev/logpager/cmd"

func main() {
	cmd.Execute()
}
