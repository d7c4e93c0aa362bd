// Command quizgame is the terminal client for the quiz game server.
package main

import "github.com/mcoot/quizgame/internal/cli"

func main() {
	cli.Execute()
}
