// Package cli implements the stubd command line interface.
package cli
