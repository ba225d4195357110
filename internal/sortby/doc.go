// Package sortby provides stable multi-key sorting over property paths and
// comparator functions. The first criterion is the primary key.
package sortby
