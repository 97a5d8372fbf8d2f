// Package merge implements the deep merge used to layer configuration trees.
// Trees are yaml.v3 nodes so mapping key order survives every merge and is
// reproduced when the result is encoded again.
package merge
