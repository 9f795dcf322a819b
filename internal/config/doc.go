// Package config provides configuration management for kubewire.
//
// Configuration is loaded from several YAML files and merged in order, with
// later sources overriding earlier ones:
//
//  1. Default configuration (built into the binary)
//  2. User configuration (~/.config/kubewire/config.yaml)
//  3. Project configuration (./.kubewire/config.yaml)
//
// Missing files are skipped. Fields left empty in a layer keep the value of
// the layer below. Command-line flags are applied on top by the cmd package.
//
// # Example
//
//	kubeconfig: /home/me/.kube/lab.yaml
//	allowedHosts:
//	  - 10.0.0.1:6443
//	  - https://kube.lab.example
//	requestTimeout: 15s
//	handleTTL: 10m
//	logLevel: debug
//	logFormat: json
package config
