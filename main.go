package main

import (
	_ "github.com/pngtap/pngtap/src/crctool"
	_ "github.com/pngtap/pngtap/src/decode"
	"github.com/pngtap/pngtap/src/tool"
)

func main() {
	tool.Execute()
}
