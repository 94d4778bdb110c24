// Package universe turns a located listing grid into the sorted set of
// instrument records, and reads back the ticker list artifact.
package universe
