// Package cmd contains the command-line entry points for manifold: the
// experiment runner itself and supporting utilities such as plotting the
// learned embedding.
package cmd
