// Package main provides the armature CLI for validating game unit snapshots.
package main

func main() {
	Execute()
}
