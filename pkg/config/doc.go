// Package config provides configuration management for the price predictor.
//
// # Key Features
//
// - Config: single structure covering artifacts, preprocessing, serving, batch,
// logging and observability settings
// - Viper-backed loading from an optional YAML file plus environment
// variables (PRICER_ prefix, "." replaced by "_")
// - ARTIFACTS_PATH selects the artifact store, as in earlier deployments
// - Simple YAML loading with ${VAR_NAME} substitution for auxiliary files such
// as the artifact manifest
//
// # Usage
//
//	v := viper.New()
//	cfg, err := config.LoadWithViper(v, "pricer.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variables
//
//	ARTIFACTS_PATH=s3://models/ames/v3      # artifacts.path
//	PRICER_SERVER_ADDR=:9090                # server.addr
//	PRICER_PREPROCESS_STRICT_CATEGORIES=true
//
// # Configuration File
//
//	artifacts:
//	  path: Deployment_Artifacts
//	preprocess:
//	  skewed_features: [GrLivArea, 1stFlrSF, TotalBsmtSF, GarageArea]
//	  passthrough_ordinal: [ExterQual, KitchenQual]
//	server:
//	  addr: ":8080"
//	  max_connections: 256
package config
