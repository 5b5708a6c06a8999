// Command variance runs the variance analysis on a local CSV or Excel file
// and writes the artifacts to a directory.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:]))
}
