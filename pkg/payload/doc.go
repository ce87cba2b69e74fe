// Package payload defines the JSON wire types for the control API and the
// conversions between them and core stub types.
package payload
