// Package fetch runs git fetch across every discovered checkout.
//
// It offers CommandBuilder for the Cobra command and Service for the bounded
// worker pool that fetches repositories, retries transient failures once, and
// reports results in enumeration order.
package fetch
