package common

import (
	"compress/gzip"
	"fmt"
	"imputeqc/pipeline/models"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"
)

const (
	AnnotatedHeader = "##fileformat=VCFv4.1\n" +
		"##INFO=<ID=MAF,Number=1,Type=Float,Description=\"Estimated Alternate Allele Frequency\">\n" +
		"##INFO=<ID=R2,Number=1,Type=Float,Description=\"Estimated Imputation Accuracy\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

	FlatHeader = "SNP\tREF(0)\tALT(1)\tALT_Frq\tMAF\tAvgCall\tRsq\tGenotyped\tLooRsq\tEmpR\tEmpRsq\tDose0\tDose1\n"
)

func InitConfig() *models.Config {
	var cfg models.Config

	// get this file's path
	_, filename, _, _ := runtime.Caller(0)
	folderpath := path.Dir(filename)

	// retrieve common's test.config
	f, err := os.Open(fmt.Sprintf("%s/test.config.yml", folderpath))
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&cfg)
	if err != nil {
		processError(err)
	}

	return &cfg
}

func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

// AnnotatedLine renders one data line of an annotated (VCF-like) file.
func AnnotatedLine(chrom string, pos int, ref string, alt string, info string) string {
	return fmt.Sprintf("%s\t%d\t.\t%s\t%s\t.\tPASS\t%s\n", chrom, pos, ref, alt, info)
}

// FlatLine renders one data line of a flat quality table matching
// FlatHeader.
func FlatLine(id string, maf string, rsq string, genotyped string, empRsq string) string {
	parts := strings.Split(id, ":")
	ref, alt := "N", "N"
	if len(parts) == 4 {
		ref, alt = parts[2], parts[3]
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t0.99\t%s\t%s\t-\t-\t%s\t-\t-\n",
		id, ref, alt, maf, maf, rsq, genotyped, empRsq)
}

// WriteGzipFile writes content gzip-compressed to dir/name and returns the
// full path.
func WriteGzipFile(t *testing.T, dir string, name string, content string) string {
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	assert.Nil(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	assert.Nil(t, err)
	assert.Nil(t, gz.Close())

	return p
}

func WritePlainFile(t *testing.T, dir string, name string, content string) string {
	p := filepath.Join(dir, name)
	assert.Nil(t, os.WriteFile(p, []byte(content), 0644))
	return p
}
