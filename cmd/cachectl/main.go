// Command cachectl inspects block-cache metadata.
package main

func main() {
	execute()
}
