// Package devkit provides a scripted transport and canned API payloads for
// exercising clients without a network.
package devkit
