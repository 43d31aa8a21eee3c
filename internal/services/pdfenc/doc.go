// Package pdfenc adapts the pdfcpu encryption primitive: plaintext document
// plus credential in, ciphertext document out, with an ordered cipher
// variant chain so a missing strong cipher degrades gracefully instead of
// failing the item.
package pdfenc
