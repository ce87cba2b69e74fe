// Package storage provides the ordered in-memory stub store and its
// matching/ranking algorithm.
package storage
