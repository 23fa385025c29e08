// proctor — policy-compliance evaluator for agent action traces.
package main

import "github.com/vapkit/proctor/internal/cli"

func main() {
	cli.Execute()
}
