// Package config provides server configuration types and the loaders for
// config files and stub definition files.
package config
