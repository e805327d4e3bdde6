// Package logger provides structured logging for wiring applications
// using zerolog.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("di")
//	log.Info("graph validated", logger.Fields("providers", 12))
package logger
