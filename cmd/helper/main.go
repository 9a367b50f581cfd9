// Command helper sends a message to a chat model and keeps the conversation
// in a local JSON history file.
package main

import "github.com/diogo/helper/internal/commands"

func main() {
	commands.Execute()
}
