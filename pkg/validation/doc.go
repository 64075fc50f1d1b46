// Package validation holds the input rules shared by the step graph and the quote flow:
// UK postcodes, circuit bandwidth limits per interface and contact details.
package validation
