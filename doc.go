// Package pricer estimates Ames, Iowa house sale prices from a trained linear
// model and its preprocessing artifacts.
//
// A prediction runs the same steps the model was trained with:
//
//  1. ordinal-encode the quality and category columns
//  2. log1p the skewed numeric columns
//  3. add any missing training columns as 0
//  4. project onto the model's feature order and standardize
//  5. take the linear prediction and invert the log target with expm1
//
// # Packages
//
//	pkg/artifact    - loads the artifact bundle from disk, S3 or GCS
//	pkg/preprocess  - the encode, transform, complete and scale steps
//	pkg/predict     - single and batch prediction, price ranges
//	pkg/formats     - CSV and Parquet tables in, CSV out
//	pkg/form        - the ten user-facing inputs with defaults and bounds
//	internal/server - HTTP API
//	cmd/pricer      - serve, predict, batch and features commands
//
// # Quick Start
//
//	pricer predict --artifacts ./artifacts --OverallQual 8 --GrLivArea 2100
//	pricer batch --artifacts ./artifacts -i houses.csv --compress zstd
//	pricer serve --artifacts s3://models/ames/v3
//
// Configuration is read from an optional YAML file, then PRICER_* environment
// variables, then flags.
package pricer
