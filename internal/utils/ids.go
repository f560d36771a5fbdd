package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func GenerateNanoID(length int) string {
	id, _ := gonanoid.Generate(nanoidAlphabet, length)
	return id
}

// GenerateNanoIDWithPrefix builds ids like "pdf_x7k93m2ab41z"
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	return prefix + "_" + GenerateNanoID(length)
}
