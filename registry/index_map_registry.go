/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Collection names used by estatesync.
const (
	Users       = "users"
	Properties  = "properties"
	Settings    = "settings"
	Credentials = "credentials"
)

// IndexMapRegistry associates collections with their DynamoDB key templates.

var (
	indexMapRegistry = make(map[string]map[string]string)
	mu               sync.RWMutex
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func init() {
	RegisterIndexMap(Users, entityIndexMap("USER"))
	RegisterIndexMap(Properties, entityIndexMap("PROPERTY"))
	RegisterIndexMap(Settings, entityIndexMap("SETTING"))
	RegisterIndexMap(Credentials, entityIndexMap("CREDENTIAL"))
}

// entityIndexMap is the single-table layout: the document lives under its own
// PK/SK and is listed under its collection prefix in GSI1.
func entityIndexMap(prefix string) map[string]string {
	return map[string]string{
		"PK":     prefix + "#{id}",
		"SK":     prefix + "#{id}",
		"GSI1PK": prefix,
		"GSI1SK": "{id}",
	}
}

// RegisterIndexMap associates a collection with a key template map (PK, SK, GSI1PK, ...).
// Registering a collection again replaces its templates.
func RegisterIndexMap(collection string, idxMap map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[collection] = idxMap
}

// GetIndexMap retrieves the key templates for a collection, if any.
func GetIndexMap(collection string) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[collection]
	return m, ok
}

// Collections lists every registered collection in sorted order.
func Collections() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(indexMapRegistry))
	for name := range indexMapRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expand replaces every macro in the templates with id.
func Expand(idxMap map[string]string, id string) map[string]string {
	expanded := make(map[string]string, len(idxMap))
	for field, template := range idxMap {
		expanded[field] = macroPattern.ReplaceAllString(template, id)
	}
	return expanded
}

// CollectionForKey resolves which collection a partition key belongs to by
// matching the static prefix of each registered PK template.
func CollectionForKey(pk string) (string, string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	for name, idxMap := range indexMapRegistry {
		template, ok := idxMap["PK"]
		if !ok {
			continue
		}
		loc := macroPattern.FindStringIndex(template)
		if loc == nil {
			continue
		}
		prefix, suffix := template[:loc[0]], template[loc[1]:]
		if strings.HasPrefix(pk, prefix) && strings.HasSuffix(pk, suffix) && len(pk) > len(prefix)+len(suffix) {
			return name, pk[len(prefix) : len(pk)-len(suffix)], true
		}
	}
	return "", "", false
}
