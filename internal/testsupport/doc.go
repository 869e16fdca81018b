// Package testsupport holds fixtures shared by package tests: temp-backed
// configs and sample input files.
package testsupport
