package main

import "github.com/wwdcgrab/wwdcgrab/cmd"

func main() {
	cmd.Execute()
}
