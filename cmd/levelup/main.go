package main

import "github.com/xmuzan/samplepomodoro/cmd/levelup/root"

func main() {
	root.Execute()
}
