// Package quote runs the steps that follow the wizard: address lookup, quote submission,
// pricing selection and the final contact form that forwards a lead to the CRM.
package quote
