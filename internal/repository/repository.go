// Package repository defines the data access interfaces for the domain
// aggregates. Implementations live in subpackages (e.g., postgres).
package repository
