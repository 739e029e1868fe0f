package main

import "github.com/shouni/go-web-monitor/cmd"

func main() {
	cmd.Execute()
}
