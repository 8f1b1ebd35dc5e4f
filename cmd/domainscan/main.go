// Package main provides the entry point for the domainscan CLI.
//
// domainscan drains a queue of discovered domain names, renders each domain
// in a headless browser, and stores a structured semantic classification of
// its content.
//
// Usage:
//
//	domainscan seed example.com example.org
//	domainscan run --limit 100
//	domainscan report --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
