package main

import (
	"github.com/punkzieeee/demo-socketio/cmd"
)

func main() {
	cmd.Execute()
}
