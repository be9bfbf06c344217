// Package dataprocessing holds the column transforms of the loan cleaning
// pipeline. Every function takes a table and returns a new one, leaving its
// input untouched, so stages can be composed and tested in isolation.
//
// # Stages
//
// The operations package runs them in this order:
//
//  1. LoadFile reads CSV or .xlsx input and infers column kinds
//  2. DropColumn removes the identifier column
//  3. ImputeMissing fills text columns with their mode and numeric columns with their median
//  4. ClipOutliersIQR limits configured columns to the Tukey fence
//  5. EncodeTarget maps the label column through the configured mapping
//  6. EncodeOrdinal or EncodeOneHot converts categorical columns to numbers
//  7. StandardScale standardizes numeric columns
//  8. ValidateTarget rejects tables whose target still has gaps
//
// # Usage
//
//	t, err := dataprocessing.LoadFile("data/raw/loan_prediction.csv")
//	if err != nil {
//	    return err
//	}
//	t = dataprocessing.DropColumn(t, "Loan_ID")
//	t, report := dataprocessing.ImputeMissing(t)
//	t = dataprocessing.EncodeTarget(t, "Loan_Status", map[string]float64{"N": 0, "Y": 1})
//	t, enc := dataprocessing.EncodeOrdinal(t, categorical)
//	t, stats := dataprocessing.StandardScale(t, numeric)
//	if err := dataprocessing.ValidateTarget(t, "Loan_Status"); err != nil {
//	    return err
//	}
//
// # Statistics
//
// Quantiles use linear interpolation at rank p*(n-1) over the present
// values, and the median is the 0.5 quantile. Modes break ties towards the
// lexicographically smallest value. The scaler uses the population standard
// deviation, and a constant column scales to NaN.
package dataprocessing
