// Command crimectl inspects the LAPD incident export from the terminal: the
// same summaries the dashboard serves, category predictions, data checks and
// deterministic mock exports.
//
// Usage:
//
//	crimectl summary --year 2023
//	crimectl trend --category "VEHICLE - STOLEN"
//	crimectl geo --category BURGLARY --limit 10
//	crimectl predict --area Central --day 4 --hour 22 --month 7
//	crimectl validate --file Crime_Data_from_2020_to_Present.csv
//	crimectl genmock --rows 5000 --out data/mock/crime_mock.csv
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
