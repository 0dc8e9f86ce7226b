package cache

import "fmt"

// GenerateKeyWithParams joins a prefix and parameters into one cache key.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// BuildPattern turns a key prefix into a trailing-glob match pattern.
func BuildPattern(prefix string) string {
	return prefix + "*"
}
