// Package domain defines core data models and interfaces shared across graphseal.
// It contains plain types (keys, envelopes, certificates, mutations) and
// contracts (interfaces) only.
package domain
