// Package kmeans implements seeded k-means clustering.
//
// Used by the ML-Index to partition points into clusters whose distance to
// their center becomes the projection key.
package kmeans
