package main

import "github.com/zxliu/RedisDesktopManager/cmd"

func main() {
	cmd.Execute()
}
