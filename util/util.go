package util

import (
	"path/filepath"
	"strings"

	"golang.org/x/exp/constraints"
)

var videoExtensions = map[string]string{
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

func IsVideoFile(name string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// VideoContentType returns the MIME type for a recognized video extension and
// false for anything else.
func VideoContentType(name string) (string, bool) {
	ct, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
