// Package main provides the entry point for the domaindive CLI.
//
// domaindive collects public information about a domain or IP address
// (DNS records, WHOIS registration, nameservers, TLS certificate, HTTP
// headers, geolocation) and prints one report per address.
//
// Usage:
//
//	domaindive analyze <address>...
//	domaindive compare <address>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
