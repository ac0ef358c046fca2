package main

import "github.com/sadopc/studyplan/internal/cli"

func main() {
	cli.Execute()
}
