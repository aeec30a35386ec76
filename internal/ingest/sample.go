package ingest

// SampleFileName is the suggested name for the generated example file.
const SampleFileName = "sample-transactions.csv"

const sampleCSV = `description,amount,category,date
Grocery Store,-50.25,Food,2024-01-15
Monthly Salary,3000.00,Salary,2024-01-01
Gas Station,-40.00,Transportation,2024-01-10
Coffee Shop,-4.50,Food,2024-01-12
Freelance Project,500.00,Freelance,2024-01-20
`

// SampleCSV returns a five-row example in the accepted import format.
func SampleCSV() []byte {
	return []byte(sampleCSV)
}
